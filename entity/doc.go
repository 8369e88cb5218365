// Package entity holds authd's persisted records.
//
// Records are plain data with gorm column mappings. Relations are carried
// by id; the pointer and slice relation fields are only populated when a
// repository preloads them for a use case. The only behavior here is pure:
// expiry arithmetic on tokens and grant codes.
package entity
