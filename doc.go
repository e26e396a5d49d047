/*
go-linecount counts people, or any other tracked object class, crossing a
virtual line in a video stream.

Detections from a YOLOv5 model are decoded by the postprocess package,
associated into identity tracks by a tracker (SORT or BYTETrack) and passed
to the counter Engine, which tests the motion of each identity between
consecutive frames against the border line and a set of direction
constraints.  The render packages draw the result onto the frame.

See cmd/linecount for the command line tool.
*/
package linecount
