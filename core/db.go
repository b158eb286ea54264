package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// SafeOrderings keeps the orderings whose field is listed in allowed.
func SafeOrderings(ordering []DBOrdering, allowed ...string) []DBOrdering {
	safe := make([]DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		for _, fld := range allowed {
			if ord.Field == fld {
				safe = append(safe, ord)
				break
			}
		}
	}
	return safe
}
