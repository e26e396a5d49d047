// Package render draws the line counter state onto GoCV Mats for display
// and video output.  See the canvas subpackage for a renderer that works on
// any draw.Image without OpenCV.
package render
