// Package wire provides the XML-style wire fragment tree that generated
// codecs read and write, plus the leaf value conversion rules shared by
// the emit strategies.
//
// A Fragment is one element: name, optional namespace, attributes, text,
// and ordered children. Children keep wire-input encounter order, which
// is the order decode plans process entries in.
package wire
