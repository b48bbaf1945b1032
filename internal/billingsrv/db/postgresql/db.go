// Package postgresql implements the billing catalog store over a scoped
// PostgreSQL connection.
package postgresql

import (
	"github.com/offerd/offerd/internal/billingsrv/db/dbmanager"
)

type billingCatalogDb struct {
	em *entityManager
	rm *referenceManager
	cm *connectionManager
}

func NewBillingCatalogDb(c dbmanager.ScopedConn) (*entityManager, *referenceManager, *connectionManager) {
	b := &billingCatalogDb{}
	b.em = newEntityManager(c)
	b.rm = newReferenceManager(c)
	b.cm = newConnectionManager(c)
	return b.em, b.rm, b.cm
}
