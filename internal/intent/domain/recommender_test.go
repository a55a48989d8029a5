package domain

import "testing"

func TestRecommend_DecisionTable(t *testing.T) {
	engine := newTestEngine(t)

	cases := []struct {
		name      string
		stage     string
		objection bool
		handover  bool
		want      string
	}{
		{"cold no signals", StageCold, false, false, ActionNone},
		{"curious", StageCurious, false, false, ActionNurture},
		{"interested", StageInterested, false, false, ActionEducate},
		{"hot", StageHot, false, false, ActionPresentOffer},
		{"closing", StageClosing, false, false, ActionCloseSale},
		{"objection outranks stage", StageClosing, true, false, ActionHandleObjection},
		{"objection on cold", StageCold, true, false, ActionHandleObjection},
		{"handover outranks everything", StageClosing, true, true, ActionHandover},
		{"handover on cold", StageCold, false, true, ActionHandover},
	}
	for _, tc := range cases {
		if got := engine.Recommend(tc.stage, tc.objection, tc.handover); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
