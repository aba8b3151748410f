// Package attr defines the closed set of values an attribute can hold.
//
// A Value is one of Absent, Null, Bool, Number, Text, List or Object. The
// interface is sealed with a marker method so operator and ordering code can
// switch exhaustively over the known cases.
//
// Absent and Null are distinct: Absent means the key does not exist on the
// record, Null means the key exists without a value. Absent never appears in
// serialized data; it is only produced by field resolution.
package attr
