// Package store provides persistent storage for the task manager using SQLite.
//
// # Architecture
//
// The Store interface covers three areas:
//
//   - Identities: User and Admin records. The two collections are
//     independent namespaces; a username may exist in both at once and
//     the records remain distinct identities.
//   - Organisations: named groups holding admin, user, task, and
//     pending-request reference sets.
//   - Tasks: the unit of work, looked up by ID or assignee username.
//
// SQLiteStore implements the full interface. The original document
// model kept reference arrays inside each record; here those arrays
// become membership tables (user_tasks, organisation_admins, and so
// on) whose rowid preserves insertion order.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: requested entity does not exist
//   - ErrDuplicateIdentity: username or email taken within a namespace
//   - ErrOrganisationNotFound: named organisation does not exist
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore(":memory:") for
// integration tests with real SQLite.
//
// The store offers no multi-statement transactions; callers performing
// multi-step bookkeeping (task creation touches up to three tables)
// must handle partial failure themselves.
package store
