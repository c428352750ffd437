// Package builtin provides the functions callable from suite files with
// the {{name(args)}} syntax, e.g. {{uuid()}} or {{base64("user:pass")}}.
package builtin
