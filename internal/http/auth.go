package http

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const accessPasswordHeader = "X-Access-Password"

// passwordGate checks a single shared secret. A gate with neither a hash
// nor a plain password lets everything through.
type passwordGate struct {
	hash  []byte
	plain []byte
}

func newPasswordGate(plain, hash string) *passwordGate {
	g := &passwordGate{}
	if hash != "" {
		g.hash = []byte(hash)
	} else if plain != "" {
		g.plain = []byte(plain)
	}
	return g
}

func (g *passwordGate) enabled() bool {
	return len(g.hash) > 0 || len(g.plain) > 0
}

// check verifies the password in the X-Access-Password header or, failing
// that, the basic-auth password.
func (g *passwordGate) check(r *http.Request) bool {
	if !g.enabled() {
		return true
	}
	supplied := r.Header.Get(accessPasswordHeader)
	if supplied == "" {
		_, supplied, _ = r.BasicAuth()
	}
	if supplied == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare(g.plain, []byte(supplied)) == 1
}
