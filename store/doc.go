// Package store holds one repository per aggregate over the gorm database.
//
// Repositories return domain errors: a missing row is errors.NotFound, a
// unique constraint violation is errors.AlreadyExists. Relations are never
// loaded implicitly; each finder preloads exactly what its use case needs.
//
// Store.Transaction hands the callback a Store bound to one transaction so
// several repositories can write atomically:
//
//	err := s.Transaction(ctx, func(tx *store.Store) error {
//		if err := tx.Tokens.Create(ctx, access, refresh); err != nil {
//			return err
//		}
//		return tx.Codes.Consume(ctx, code.ID)
//	})
package store
