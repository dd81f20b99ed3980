package umi

import (
	"sort"

	"github.com/grailbio/rnaquant/util"
)

// GroupingMethod names one of the umi_tools-derived strategies for
// collapsing near-identical UMI sequences that a PCR or sequencing error
// could have produced from a single original molecule.
type GroupingMethod string

const (
	// GroupUnique treats every distinct UMI string as its own group: no
	// error correction at all.
	GroupUnique GroupingMethod = "unique"
	// GroupCluster forms the connected components of the graph where two
	// UMIs are joined whenever they're within the Hamming threshold,
	// regardless of their observed counts.
	GroupCluster GroupingMethod = "cluster"
	// GroupAdjacency is like GroupCluster: UMIs are processed in
	// descending count order and each seed collects its whole connected
	// component.
	GroupAdjacency GroupingMethod = "adjacency"
	// GroupDirectional only joins a less abundant UMI to a more abundant
	// neighbor when count[parent] >= 2*count[child]-1, the umi_tools
	// directional-adjacency rule; this avoids merging two genuinely
	// distinct, comparably abundant UMIs that happen to be one edit apart.
	GroupDirectional GroupingMethod = "directional"
)

// Group is one collapsed set of UMI observations: every member is assigned
// to Representative for counting purposes.
type Group struct {
	Representative string
	Members        []string
}

// GroupUMIs partitions the UMIs in counts (observed UMI string -> number of
// reads carrying it) into Groups according to method. maxHamming bounds how
// many mismatches can separate two UMIs that get merged (umi_tools itself
// always uses 1; this generalizes it since rnaquant's UMI lengths vary by
// protocol).
//
// Groups are seeded from the most abundant unvisited UMI (ties broken by
// the lexicographically smallest UMI). Within a group, the representative
// is the lexicographically smallest member, so results are deterministic
// across runs.
func GroupUMIs(counts map[string]int, method GroupingMethod, maxHamming int) []Group {
	umis := make([]string, 0, len(counts))
	for u := range counts {
		umis = append(umis, u)
	}
	sortByCountThenLex(umis, counts)

	if method == GroupUnique {
		groups := make([]Group, len(umis))
		for i, u := range umis {
			groups[i] = Group{Representative: u, Members: []string{u}}
		}
		return groups
	}

	directional := method == GroupDirectional
	visited := make(map[string]bool, len(umis))
	var groups []Group
	for _, seed := range umis {
		if visited[seed] {
			continue
		}
		members := bfsComponent(seed, umis, counts, maxHamming, directional, visited)
		rep := seed
		for _, m := range members {
			if m < rep {
				rep = m
			}
		}
		groups = append(groups, Group{Representative: rep, Members: members})
	}
	return groups
}

// bfsComponent explores outward from seed (already the most abundant
// unvisited UMI, since umis is sorted) over edges allowed by the grouping
// rule, marking every UMI it reaches as visited and returning the full
// member list including seed.
func bfsComponent(seed string, umis []string, counts map[string]int, maxHamming int, directional bool, visited map[string]bool) []string {
	visited[seed] = true
	members := []string{seed}
	queue := []string{seed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, cand := range umis {
			if visited[cand] || len(cand) != len(cur) {
				continue
			}
			if util.Hamming(cur, cand) > maxHamming {
				continue
			}
			if directional && !directionalEdgeAllowed(counts, cur, cand) {
				continue
			}
			visited[cand] = true
			members = append(members, cand)
			queue = append(queue, cand)
		}
	}
	return members
}

// directionalEdgeAllowed implements umi_tools' a >= 2b-1 rule: the directed
// edge from a (the UMI being expanded) to b is only followed if b could
// plausibly be a PCR/sequencing error derived from a.
func directionalEdgeAllowed(counts map[string]int, a, b string) bool {
	return counts[a] >= 2*counts[b]-1
}

func sortByCountThenLex(umis []string, counts map[string]int) {
	sort.Slice(umis, func(i, j int) bool {
		if counts[umis[i]] != counts[umis[j]] {
			return counts[umis[i]] > counts[umis[j]]
		}
		return umis[i] < umis[j]
	})
}
