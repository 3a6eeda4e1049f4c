package middleware

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the external auth service and injects the subject and role
// claims into the request context.  Protected routes read the identity
// back via c.Get("user_id") and c.Get("role"); the role claim carries
// STUDENT, COACH or ACADEMY.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Only HS256 tokens are accepted; any other signing method
            // is rejected outright.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // Type assertions are left to downstream consumers; the sub
            // claim may be a string or a JSON number.
            c.Set("user_id", claims["sub"])
            c.Set("role", claims["role"])
            return next(c)
        }
    }
}

// OptionalJWTAuth injects identity claims like JWTAuth but lets requests
// without a token pass through anonymously.  Used on the hold endpoints,
// where guests may reserve slots before signing in.  A malformed token is
// still rejected so a client cannot silently fall back to guest.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
    authed := JWTAuth(secret)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        withAuth := authed(next)
        return func(c echo.Context) error {
            if c.Request().Header.Get("Authorization") == "" {
                return next(c)
            }
            return withAuth(c)
        }
    }
}
