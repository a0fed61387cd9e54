/*
	Package segment supports compact relabeling of integer label fields.  Labels
	produced by arbitrary upstream processes can be mapped onto a dense range
	(RelabelSequential), combined into their pairwise product segmentation
	(JoinSegmentations), and carried around as sparse reusable mappings
	(ArrayMap) without allocating tables proportional to the largest label.

	Label 0 is reserved for background and is never remapped to a nonzero value.
*/
package segment
