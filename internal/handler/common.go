package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getUserID
    "strconv" // strconv converts strings to numeric types
    "strings" // strings provides trimming helpers
    "time"    // time parses DATE values

    "github.com/go-playground/validator/v10" // struct validation for request bodies
    "github.com/labstack/echo/v4"            // echo defines request context types
)

// validate is the shared validator instance used by handlers that
// bind structured request bodies.  validator.New is safe for
// concurrent use.
var validate = validator.New()

// dateLayout is the wire format for all DATE values.  Dates carry
// no time component; they are parsed as midnight UTC.
const dateLayout = "2006-01-02"

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
    v := c.Get("user_id") // fetch user_id from context
    switch t := v.(type) { // perform type switch on the value
    case uint64: // when already uint64
        return t, nil // return directly
    case int: // when stored as int
        return uint64(t), nil // convert to uint64
    case int64: // when stored as int64
        return uint64(t), nil // convert to uint64
    case float64: // when stored as float64
        return uint64(t), nil // convert to uint64
    case string: // when stored as string
        if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
            return n, nil // return parsed number
        }
    } // end type switch
    return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// parseIDParam reads a positive uint64 path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// parseDate parses a YYYY-MM-DD value into midnight UTC.
func parseDate(raw string) (time.Time, bool) {
    t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
    if err != nil {
        return time.Time{}, false
    }
    return t, true
}
