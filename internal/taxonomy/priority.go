package taxonomy

// LevelOf returns the severity of a finding kind.
func LevelOf(k FindingKind) Level {
	level, ok := levelMap[k]
	if !ok {
		return LevelNote // unknown kinds never fail a run
	}
	return level
}

var levelMap = map[FindingKind]Level{
	DecodeError:     LevelError,
	SchemaViolation: LevelError,
	RowError:        LevelError,
	SpecError:       LevelError,

	UnknownKey:       LevelWarning,
	EmptyTable:       LevelWarning,
	DuplicateCase:    LevelWarning,
	CustomComparator: LevelWarning,

	SuiteMethod:    LevelNote,
	RegisteredType: LevelNote,
	SuiteSubject:   LevelNote,
}
