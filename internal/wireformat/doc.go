// Package wireformat implements the tagged, self-describing binary object
// codec used on the wire between clients and the client authentication
// endpoint.
//
// Binder is a string-keyed map whose values may be byte strings, signed
// integers, strings, nested Binders, or lists of any of the above. Pack and
// Unpack are the symmetric pair of operations that move a Binder to and from
// its wire representation. The codec does not guarantee key ordering; the
// protocol built on top of it never relies on ordering.
package wireformat
