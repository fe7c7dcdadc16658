package logic

// Decide maps a rep event to the feedback the actuator should play.
// Success and fail differ only in pitch.
func Decide(ev RepEvent) FeedbackCommand {
	tone := FailToneHz
	if ev.Success {
		tone = SuccessToneHz
	}
	return FeedbackCommand{
		ToneHz:      tone,
		DutyPercent: FeedbackDuty,
		Active:      FeedbackActive,
	}
}

// OutcomeForTone reports whether a tone recorded in a diagnostic record marks
// a successful rep. ok is false when the tone is not a feedback tone.
func OutcomeForTone(hz uint32) (success, ok bool) {
	switch hz {
	case SuccessToneHz:
		return true, true
	case FailToneHz:
		return false, true
	}
	return false, false
}
