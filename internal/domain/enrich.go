package domain

// DefaultUnknownAttendant labels records whose card matches no attendant.
const DefaultUnknownAttendant = "DESCONHECIDO"

// Enrich left-joins records against the attendants' primary card ids.
// Secondary cards are not matched. Unmatched records get unknownLabel as
// nickname (DefaultUnknownAttendant when empty). Inputs are not modified.
func Enrich(records []FuelingRecord, attendants []Attendant, unknownLabel string) []EnrichedRecord {
	if unknownLabel == "" {
		unknownLabel = DefaultUnknownAttendant
	}

	byCard := make(map[string]string, len(attendants))
	for _, a := range attendants {
		if _, exists := byCard[a.CardID]; !exists {
			byCard[a.CardID] = a.Nickname
		}
	}

	out := make([]EnrichedRecord, 0, len(records))
	for _, r := range records {
		nickname, ok := byCard[r.AttendantCardID]
		if !ok {
			nickname = unknownLabel
		}
		out = append(out, EnrichedRecord{FuelingRecord: r, AttendantNickname: nickname})
	}
	return out
}
