// Package section resolves headings and section extents over a parsed
// document.
//
// A section runs from its heading to the next real heading at the same or
// a shallower level, or to the document end. "Real" matters: copying text
// into a document often bleeds heading styles onto ordinary paragraphs,
// so a heuristic classifies suspect headings as false before any section
// boundary is computed. False headings never terminate a section and are
// never returned as lookup targets.
package section
