package middleware

// identity.go holds the helper used to tag requests with a user identity
// for rate-limit keys.  The value comes from the claims JWTAuth stored in
// the context; anonymous traffic (slot browsing, guest holds) is bucketed
// together under "guest".

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// userID returns a stable string identity for the request's user, or
// "guest" when unauthenticated.  The claim may arrive as a string or a
// JSON number depending on the issuer, so both are handled.
func userID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "guest"
    }
    switch t := v.(type) {
    case string:
        if t != "" {
            return t
        }
    case float64:
        return fmt.Sprintf("%.0f", t)
    }
    return "guest"
}
