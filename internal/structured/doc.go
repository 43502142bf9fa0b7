// Package structured parses the structured bore dialect into an
// unresolved Document: an arena of blocks addressed by index, their items,
// and the worklist of BRANCH/MERGE pairings the resolver must attach.
//
// A short example:
//
//	bell = 60
//	MAIN
//	  8, 8, 300, mouthpipe
//	  BRANCH, valve1
//	  8, 8, 20
//	  MERGE, valve1
//	  8, bell, 500, bell flare
//	  OPEN_END
//	END_MAIN
//	GROUP, valve1
//	  8, 8, 130, first valve loop
//	END_GROUP
//
// Numeric fields are evaluated as soon as they are read, against the
// variables bound on earlier lines.
package structured
