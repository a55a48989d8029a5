package domain

// Recommend maps the post-turn state to the single next sales action.
// Rules are evaluated top-down; the first match wins. An explicit handover
// request outranks everything, then open objections, then the stage ladder.
func (e *Engine) Recommend(stage string, hasUnresolvedObjection, handover bool) string {
	if handover {
		return ActionHandover
	}
	if hasUnresolvedObjection {
		return ActionHandleObjection
	}

	switch stage {
	case StageClosing:
		return ActionCloseSale
	case StageHot:
		return ActionPresentOffer
	case StageInterested:
		return ActionEducate
	case StageCurious:
		return ActionNurture
	default:
		return ActionNone
	}
}
