package reload

import "strings"

// Strategy names how a client should apply a reload.
type Strategy string

const (
	// StrategyIncremental swaps only the recompiled modules.
	StrategyIncremental Strategy = "INCREMENTAL"
	// StrategyStatePreserve reloads code while keeping application state.
	StrategyStatePreserve Strategy = "STATE_PRESERVE"
	// StrategyModuleReplace replaces whole modules without restarting.
	StrategyModuleReplace Strategy = "MODULE_REPLACE"
	// StrategyFullRestart tears the client down and starts over.
	StrategyFullRestart Strategy = "FULL_RESTART"
)

// StrategyFor maps a client's declared platform tag to its reload
// strategy. The table is static: it never depends on what was built.
func StrategyFor(platform string) Strategy {
	switch strings.ToLower(platform) {
	case "android":
		return StrategyIncremental
	case "ios", "macos":
		return StrategyStatePreserve
	case "windows", "web":
		return StrategyModuleReplace
	default:
		return StrategyFullRestart
	}
}
