package courseengine

import (
	"fmt"
	"sort"
	"strings"
)

// Syllabus is the prerequisite graph over a lesson corpus. It answers the
// ordering questions the site needs: what comes before a lesson, what a
// lesson unlocks, and a stable linear reading order.
type Syllabus struct {
	lessons map[string]Lesson
	order   []string            // topological order of lesson ids
	depth   map[string]int      // longest prerequisite chain below each lesson
	unlocks map[string][]string // reverse edges of Requires
}

// NewSyllabus builds the graph and computes a reading order. It returns an
// error if any prerequisite is unresolvable or the requires relation has a
// cycle; callers are expected to have linted the corpus first.
func NewSyllabus(lessons []Lesson) (*Syllabus, error) {
	s := &Syllabus{
		lessons: make(map[string]Lesson, len(lessons)),
		depth:   make(map[string]int, len(lessons)),
		unlocks: make(map[string][]string),
	}
	indegree := make(map[string]int, len(lessons))
	for _, l := range lessons {
		s.lessons[l.ID] = l
		indegree[l.ID] = 0
	}
	for _, l := range lessons {
		for _, req := range l.Requires {
			if _, ok := s.lessons[req]; !ok {
				return nil, fmt.Errorf("syllabus: lesson %q requires unknown lesson %q", l.ID, req)
			}
			s.unlocks[req] = append(s.unlocks[req], l.ID)
			indegree[l.ID]++
		}
	}
	for id := range s.unlocks {
		sort.Strings(s.unlocks[id])
	}

	// Kahn's algorithm with a deterministic tie-break: among the currently
	// unlockable lessons, lower weight first, then name, then id.
	ready := make([]string, 0, len(lessons))
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	s.sortReady(ready)

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		s.order = append(s.order, id)
		var opened []string
		for _, next := range s.unlocks[id] {
			if s.depth[next] < s.depth[id]+1 {
				s.depth[next] = s.depth[id] + 1
			}
			indegree[next]--
			if indegree[next] == 0 {
				opened = append(opened, next)
			}
		}
		if len(opened) > 0 {
			ready = append(ready, opened...)
			s.sortReady(ready)
		}
	}

	if len(s.order) != len(lessons) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("syllabus: requires cycle among: %s", strings.Join(stuck, ", "))
	}
	return s, nil
}

func (s *Syllabus) sortReady(ready []string) {
	sort.Slice(ready, func(i, j int) bool {
		a, b := s.lessons[ready[i]], s.lessons[ready[j]]
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Ordered returns the lessons in reading order.
func (s *Syllabus) Ordered() []Lesson {
	out := make([]Lesson, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lessons[id])
	}
	return out
}

// Depth returns the length of the longest prerequisite chain below id.
// Lessons with no prerequisites have depth 0.
func (s *Syllabus) Depth(id string) int {
	return s.depth[id]
}

// Prerequisites returns the transitive closure of lessons required before
// id, in reading order.
func (s *Syllabus) Prerequisites(id string) []Lesson {
	needed := make(map[string]struct{})
	var collect func(string)
	collect = func(cur string) {
		for _, req := range s.lessons[cur].Requires {
			if _, seen := needed[req]; seen {
				continue
			}
			needed[req] = struct{}{}
			collect(req)
		}
	}
	collect(id)

	var out []Lesson
	for _, oid := range s.order {
		if _, ok := needed[oid]; ok {
			out = append(out, s.lessons[oid])
		}
	}
	return out
}

// Unlocks returns the lessons that list id as a direct prerequisite.
func (s *Syllabus) Unlocks(id string) []Lesson {
	var out []Lesson
	for _, next := range s.unlocks[id] {
		out = append(out, s.lessons[next])
	}
	return out
}
