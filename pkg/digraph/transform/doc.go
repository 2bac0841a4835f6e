// Package transform computes derived structure on a [digraph.Graph] without
// changing its edge set.
//
// # Leveling
//
// [AssignLevels] gives every node a non-negative level equal to the depth of
// the references below it. A node that references nothing sits at level 0; a
// node referencing a level-2 node sits at level 3 or higher:
//
//	users  (0)  <- orders (1) <- order_items (2)
//
// Schemas are not required to be acyclic. When the traversal meets a node
// that is still being visited, that edge contributes as if the target were at
// level 0, so cycles terminate and every node still receives a finite level.
//
// # Cycles
//
// [FindCycleEdges] reports the back edges found by a depth-first traversal.
// The result is diagnostic only: leveling does not need cycles removed.
package transform
