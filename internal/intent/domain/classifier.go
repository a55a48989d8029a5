package domain

// Classify maps a score to a funnel stage with asymmetric hysteresis.
// Upgrades apply as soon as the score enters a higher band. A downgrade
// requires the score to fall more than the hysteresis margin below the
// current stage's lower bound; jitter inside the margin keeps the stage.
func (e *Engine) Classify(score int, currentStage string) string {
	target := e.bandIndexFor(score)
	current := e.bandIndexOf(currentStage)

	if current < 0 || target >= current {
		return e.cfg.StageBands[target].Stage
	}

	// Downgrade only once the score is clearly out of the current band.
	if score < e.cfg.StageBands[current].LowerBound-e.cfg.HysteresisMargin {
		return e.cfg.StageBands[target].Stage
	}
	return currentStage
}

// bandIndexFor returns the index of the band containing score.
func (e *Engine) bandIndexFor(score int) int {
	idx := 0
	for i, band := range e.cfg.StageBands {
		if score >= band.LowerBound {
			idx = i
		}
	}
	return idx
}

// bandIndexOf returns the index of the named stage, or -1 when unknown.
func (e *Engine) bandIndexOf(stage string) int {
	for i, band := range e.cfg.StageBands {
		if band.Stage == stage {
			return i
		}
	}
	return -1
}
