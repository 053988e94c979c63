// Package cascade decides what a mutation of one entity means for the
// search index.
//
// A save writes the entity's own document first and then, if the entity's
// reindex policy allows it, saves every entity reachable through its
// declared relations. A delete walks the related entities first, with no
// policy gate, and removes the entity's own document last:
//
//	HandleSave(cs)                 HandleDelete(cs)
//	  WriteToIndex(cs)               HandleDelete(topic)
//	  ShouldCascade(cs)?               RemoveFromIndex(topic)
//	    HandleSave(topic)            RemoveFromIndex(cs)
//	      WriteToIndex(topic)
//
// The asymmetry is intentional: suppression only avoids redundant refreshes,
// while a deletion must always clean up the documents derived from the
// removed entity.
//
// Each top-level call tracks the entities it has already handled, so an
// entity is processed at most once per event and cyclic relations
// terminate. A depth limit bounds the traversal when the visited set is
// disabled (see WithoutCycleGuard).
package cascade
