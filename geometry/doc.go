/*
Package geometry holds the pixel space primitives used for line crossing
detection: segment intersection, bounding box centers and the border band
polygon drawn around a counting line.
*/
package geometry
