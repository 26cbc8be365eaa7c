package fields

import (
	"fmt"
	"strconv"
)

type MovieRuntime int32

func (m MovieRuntime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(fmt.Sprintf("%d mins", m))), nil
}

const (
	MinUserRating UserRating = 1
	MaxUserRating UserRating = 5
)

// UserRating is the personal score a user gives a watched title.
// Range checks belong to callers; storage keeps whatever it is given.
type UserRating int32

func (r UserRating) Valid() bool {
	return r >= MinUserRating && r <= MaxUserRating
}
