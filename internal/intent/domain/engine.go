package domain

// Engine evaluates conversation turns against a validated configuration.
// All methods are pure and deterministic.
type Engine struct {
	cfg EngineConfig
}

// NewEngine validates cfg and constructs the engine. Configuration problems
// surface here, at startup, never during turn processing.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}
