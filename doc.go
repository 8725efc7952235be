// doc.go -- package overview
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package densedb implements a compact, column-typed, fixed-schema row
// store. Each table is a single memory-mapped file whose body is a
// bit-dense array of fixed-width rows -- fields are packed without
// byte-padding except for a final pad to a byte boundary at the end of
// each row.
//
// A Database owns a directory of table files and a bounded cache of
// open Tables, keyed by name and reference-counted so a mapping is
// never dropped while a caller still holds a handle to it.
package densedb
