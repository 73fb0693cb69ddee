package engine

// LevelStep is the distance between two choices on a selector control.
// Choice n is stored as level n*LevelStep.
const LevelStep = 10

// EncodeLevel turns a zero-based choice code into a selector level.
func EncodeLevel(code int) int {
	return code * LevelStep
}

// DecodeLevel turns a selector level back into a choice code. Levels that
// are not a multiple of LevelStep round down.
func DecodeLevel(level int) int {
	if level < 0 {
		return -1
	}
	return level / LevelStep
}

// Player modes reported by the server.
const (
	ModePlay  = "play"
	ModePause = "pause"
	ModeStop  = "stop"
)

// Main selector levels.
var (
	mainLevelNames = []string{"Off", "Pause", "Play", "Stop"}

	modeLevels = map[string]int{
		ModePause: EncodeLevel(1),
		ModePlay:  EncodeLevel(2),
		ModeStop:  EncodeLevel(3),
	}

	levelButtons = map[int]string{
		EncodeLevel(1): "pause.single",
		EncodeLevel(2): "play.single",
		EncodeLevel(3): "stop",
	}
)

// MainLevel returns the main selector level for a power state and mode.
// A powered off player is always at level 0.
func MainLevel(power bool, mode string) int {
	if !power {
		return 0
	}
	return modeLevels[mode]
}

// Actions selector choices.
const (
	ActionNone = iota
	ActionSendText
	ActionSync
	ActionUnsync
)

var actionLevelNames = []string{"None", "SendText", "Sync to this", "Unsync"}

// Shuffle and repeat selectors share the 0..2 mode codes of the server.
var (
	shuffleLevelNames = []string{"Off", "Songs", "Albums"}
	repeatLevelNames  = []string{"Off", "Song", "Playlist"}
)

const maxModeCode = 2
