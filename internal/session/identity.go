package session

import "math/rand/v2"

// DefaultNameLength is the length of generated mailbox names.
const DefaultNameLength = 10

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateName returns n random alphanumeric characters.
func GenerateName(n int) string {
	if n <= 0 {
		n = DefaultNameLength
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(b)
}

// SetName changes the local part of the address. It does not refetch.
func (s *Session) SetName(name string) {
	s.name = name
}

// SetDomain changes the domain of the address. It does not refetch.
func (s *Session) SetDomain(domain string) {
	s.domain = domain
}

// RegenerateName replaces the name with n random characters and returns it.
func (s *Session) RegenerateName(n int) string {
	s.name = GenerateName(n)
	return s.name
}

// NextDomain switches to the domain after the current one in the known list,
// wrapping around. It reports false when no domains are known.
func (s *Session) NextDomain() bool {
	if len(s.domains) == 0 {
		return false
	}
	next := s.domains[0]
	for i, d := range s.domains {
		if d == s.domain {
			next = s.domains[(i+1)%len(s.domains)]
			break
		}
	}
	s.domain = next
	return true
}
