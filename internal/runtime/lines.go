package runtime

const (
	lineWake        = "Yeah?"
	lineListening   = "I'm listening."
	lineStopPresent = "Got you. Back to normal mode."
	lineSleep       = "Alright. Sleeping."
	lineQuietDown   = "Copy. I'll dial it way down."
	lineSeriousIn   = "Got it. Serious mode on. I'm locked in."
	lineSerious     = "Understood. Serious mode on."
	lineBackground  = "Aight. I'm back in the background."
	lineIdle        = "Going quiet. Say my name if you need me."
	lineQuit        = "Later."
	lineBrainFail   = "Mm. My brain glitched on that one. Try me again?"
)
