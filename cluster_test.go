package glyphscape

import "testing"

func cachesAt(points ...Vec2) []*RenderCache {
	out := make([]*RenderCache, len(points))
	for i, p := range points {
		out[i] = newRenderCache(string(rune('a'+i)), p, true)
	}
	return out
}

func TestClusterGroupsNearbyPoints(t *testing.T) {
	caches := cachesAt(
		Vec2{0, 0}, Vec2{3, 0}, Vec2{1.5, 2},
		Vec2{100, 100},
	)
	Cluster(caches, 10)

	reps := 0
	for _, c := range caches[:3] {
		if !c.Clustered {
			t.Errorf("%s not clustered", c.ID)
		}
		if c.Representative {
			reps++
		}
	}
	if reps != 1 {
		t.Errorf("group has %d representatives, want 1", reps)
	}
	if caches[3].Clustered || caches[3].Representative {
		t.Error("isolated point marked as clustered")
	}
}

func TestClusterRepresentativeNearestCentroid(t *testing.T) {
	caches := cachesAt(Vec2{0, 0}, Vec2{4, 0}, Vec2{2, 0.1})
	Cluster(caches, 10)
	if !caches[2].Representative {
		t.Error("point nearest the centroid should represent the group")
	}
}

func TestClusterIsIdempotent(t *testing.T) {
	caches := cachesAt(Vec2{0, 0}, Vec2{1, 1}, Vec2{50, 50}, Vec2{51, 50})
	Cluster(caches, 5)
	first := make([]bool, len(caches))
	for i, c := range caches {
		first[i] = c.Representative
	}
	Cluster(caches, 5)
	for i, c := range caches {
		if c.Representative != first[i] {
			t.Errorf("%s representative changed between runs", c.ID)
		}
	}
}

func TestClusterResetsFlags(t *testing.T) {
	caches := cachesAt(Vec2{0, 0}, Vec2{1000, 0})
	caches[0].Clustered = true
	caches[0].Representative = true
	Cluster(caches, 10)
	if caches[0].Clustered || caches[0].Representative {
		t.Error("stale flags survived")
	}
}

func TestClusterEmpty(t *testing.T) {
	Cluster(nil, 10)
}

func TestClusterRadius(t *testing.T) {
	tests := []struct {
		radius    float64
		clustered int
		reps      int
	}{
		{5, 3, 1},
		{0.1, 0, 0},
	}
	for _, tt := range tests {
		caches := cachesAt(Vec2{0, 0}, Vec2{1, 0}, Vec2{1, 1})
		Cluster(caches, tt.radius)
		clustered, reps := 0, 0
		for _, c := range caches {
			if c.Clustered {
				clustered++
			}
			if c.Representative {
				reps++
			}
		}
		if clustered != tt.clustered || reps != tt.reps {
			t.Errorf("radius %v: clustered %d, representatives %d, want %d and %d",
				tt.radius, clustered, reps, tt.clustered, tt.reps)
		}
	}
}
