package glyphscape

import (
	"time"
)

// debugStats holds per-frame timing and scene metrics.
// Only logged when the canvas is in debug mode.
type debugStats struct {
	updateTime time.Duration
	drawTime   time.Duration
	drawCalls  int
	nodes      int
	tasks      TaskSet
}

// debugLog prints timing and scene stats.
func (c *Canvas) debugLog(stats debugStats) {
	if !c.debug {
		return
	}
	logInfo("update: %v | draw: %v | total: %v",
		stats.updateTime, stats.drawTime, stats.updateTime+stats.drawTime)
	logInfo("nodes: %d | draw calls: %d | tasks: %s",
		stats.nodes, stats.drawCalls, stats.tasks)
	debugCheckTreeDepth(c.root)
}

// debugMaxTreeDepth is the glyph mesh depth above which a warning is logged.
const debugMaxTreeDepth = 8

// debugCheckTreeDepth warns if the subtree under n is deeper than the
// threshold and returns its depth.
func debugCheckTreeDepth(n *Node) int {
	depth := treeDepth(n)
	if depth > debugMaxTreeDepth {
		logWarn("tree depth %d exceeds %d (node %q)", depth, debugMaxTreeDepth, n.Name)
	}
	return depth
}

func treeDepth(n *Node) int {
	d := 0
	for _, c := range n.children {
		d = max(d, treeDepth(c))
	}
	return d + 1
}
