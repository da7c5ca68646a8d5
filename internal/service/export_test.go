package service

import "golang.org/x/crypto/bcrypt"

// UseMinBcryptCost makes password hashing fast in tests.
func (s *UserService) UseMinBcryptCost() {
	s.cost = bcrypt.MinCost
}
