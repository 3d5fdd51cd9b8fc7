/*
Package mot writes tracking results in the MOT Challenge annotation layout
along with the seqinfo.ini sequence metadata file read by evaluation tools
such as TrackEval.

An annotation file holds one line per tracked object per frame

	frame_index,track_id,x1,y1,w,h,confidence,class_id,-1,-1

with a 1-based frame index, the top left corner of the box and two decimal
precision for box and confidence values.  There is no header and a video
without detections produces an empty file.

The seqinfo.ini file name is fixed, so each video must have its annotation
and metadata pair in its own directory.  Writing a second video's metadata
into the same directory overwrites the first.
*/
package mot
