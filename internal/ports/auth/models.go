package auth

// Claims es el payload decodificado del token, tal cual vino.
// Los números se conservan como json.Number.
type Claims map[string]any

// Subject devuelve el claim "sub" si existe y es string.
func (c Claims) Subject() string {
	s, _ := c["sub"].(string)
	return s
}
