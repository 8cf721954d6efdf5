// Package core provides the table state engine behind every data grid.
//
// The package is independent of HTTP and rendering. It can be used by web
// handlers, other services, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Definitions: a [Definition] lists the columns, the rows (or a [Loader]
//     for paged data) and the caller's handlers for export, delete and forms.
//   - Table: [New] validates a definition and returns a [Table], the state
//     container for filters, sorting, pagination, visibility, pinning, order
//     and selection.
//   - Store: each table carries a [Store] with the selection mode flag and
//     the caller's configs, shared by the toolbar, menus and forms.
//   - Registry: servers register a factory per table with [Register] and
//     open fresh state per client with [Open].
//
// # Defining a Table
//
//	people, err := core.New(core.Definition[Person]{
//	    ID: "people",
//	    Columns: []core.Column[Person]{
//	        {ID: "firstName", Header: "First Name", Accessor: func(p Person) any { return p.FirstName }},
//	        {ID: "age", Header: "Age", Filter: core.FilterRange, Accessor: func(p Person) any { return p.Age }},
//	    },
//	    Data:  rows,
//	    RowID: func(_ int, p Person) string { return p.ID },
//	})
//
// # Row Pipeline
//
// Reading rows runs the pipeline in a fixed order:
//
//  1. Column filters (text contains, select equals, inclusive number and
//     date ranges, or a custom predicate)
//  2. Global fuzzy filter: every cell is ranked against the query, a row
//     passes when any cell does, and its best rank is kept
//  3. Sorting by the sort rules, then by rank, then by original position
//  4. Pagination (skipped for loader backed tables, whose rows are a page)
//
// Results are cached until a setter changes the state.
//
// # Deleting Rows
//
// Deletes always go through a confirmation: [Table.RequestDelete] returns a
// token, and only [Table.ConfirmDelete] with that token calls the caller's
// delete handler.
//
// # Error Handling
//
// Operations return sentinel errors ([ErrUnknownColumn], [ErrUnknownRow],
// ...) wrapped with context. [MapError] turns any error into a user-facing
// message with a support code.
//
// # Thread Safety
//
// A Table guards its state with one mutex. The registry is safe for
// concurrent use; registration normally happens at init time.
package core
