// Package native provides an in-process transform runtime over an XML DOM.
//
// Project scripts name functions held in a Registry. Built-in functions are
// driven by the project's field configuration:
//
//	normalize:  "default" (whole document), "tei" (the TEI text element)
//	entities:   "selectors" (text data descriptor paths)
//	metadata:   "selectors" (metadata descriptor paths)
//	facsimiles: "pb@facs" (facsimile config path and attribute)
//
// An empty script name selects the built-in function of that stage.
package native
