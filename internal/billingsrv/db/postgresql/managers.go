package postgresql

import (
	"context"
	"database/sql"

	"github.com/offerd/offerd/internal/billingsrv/db/dbmanager"
)

// Entity Manager
type entityManager struct {
	c dbmanager.ScopedConn
}

func (em *entityManager) conn() *sql.Conn {
	return em.c.Conn()
}

func newEntityManager(c dbmanager.ScopedConn) *entityManager {
	return &entityManager{c: c}
}

// Reference Manager
type referenceManager struct {
	c dbmanager.ScopedConn
}

func (rm *referenceManager) conn() *sql.Conn {
	return rm.c.Conn()
}

func newReferenceManager(c dbmanager.ScopedConn) *referenceManager {
	return &referenceManager{c: c}
}

// Connection Manager
type connectionManager struct {
	c dbmanager.ScopedConn
}

func newConnectionManager(c dbmanager.ScopedConn) *connectionManager {
	return &connectionManager{c: c}
}

func (cm *connectionManager) AddScopes(ctx context.Context, scopes map[string]string) error {
	return cm.c.AddScopes(ctx, scopes)
}

func (cm *connectionManager) DropScopes(ctx context.Context, scopes []string) error {
	return cm.c.DropScopes(ctx, scopes)
}

func (cm *connectionManager) AddScope(ctx context.Context, scope, value string) error {
	return cm.c.AddScope(ctx, scope, value)
}

func (cm *connectionManager) DropScope(ctx context.Context, scope string) error {
	return cm.c.DropScope(ctx, scope)
}

func (cm *connectionManager) DropAllScopes(ctx context.Context) error {
	return cm.c.DropAllScopes(ctx)
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}
