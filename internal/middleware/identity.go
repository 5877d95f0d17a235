package middleware

// identity.go defines helper functions shared across middleware files. Currently
// it provides a userID extraction function that pulls the user_id value stored
// in the Echo context by JWTAuth. JWT numeric claims arrive as float64 after
// parsing, so all numeric widths are normalized here. When no user is
// authenticated, "anon" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the context for keying purposes.
// It returns "anon" when no user is authenticated or the value is missing.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    case int:
        return strconv.Itoa(v)
    }
    return "anon"
}
