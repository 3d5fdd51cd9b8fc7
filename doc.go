/*
Package draftgt generates draft ground truth for multi object tracking
evaluation of airport ground support equipment videos.

Each video is run through YOLOv8 detection on the Rockchip NPU and ByteTrack
tracking, then written out as a MOT Challenge annotation file and a
seqinfo.ini sequence metadata file which annotators correct by hand.

The root package holds the class vocabulary of the detection model.  See
the mot package for the file formats, batch for processing a directory of
videos and cmd/draftgt for the command line program.
*/
package draftgt
