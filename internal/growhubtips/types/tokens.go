package types

import "time"

const (
	TokenExpiresPeriod        = time.Hour * 24
	RefreshTokenExpiresPeriod = time.Hour * 24 * 30
)
