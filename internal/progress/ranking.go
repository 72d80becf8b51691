package progress

import "math/rand"

const (
	maxRankLevel    = 32
	rankLevelChance = 0.25
)

// Leaderboard page sizes
const (
	DefaultTopPlayers = 10
	MaxTopPlayers     = 100
)

// Standing is one leaderboard row
type Standing struct {
	Rank int `json:"rank"`
	Progress
}

// rankNode carries span counts so ranks resolve in O(log n)
type rankNode struct {
	id    string
	score int
	next  []*rankNode
	span  []int
}

// Ranking orders players by experience, highest first, ties broken by
// player id. It is a skip list with span counts (the Redis ZSET layout).
// Not safe for concurrent use; MemoryStore guards it with its own lock.
type Ranking struct {
	head   *rankNode
	level  int
	length int
	scores map[string]int
	rng    *rand.Rand
}

// NewRanking creates an empty ranking
func NewRanking() *Ranking {
	return &Ranking{
		head: &rankNode{
			next: make([]*rankNode, maxRankLevel),
			span: make([]int, maxRankLevel),
		},
		level:  1,
		scores: make(map[string]int),
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// before reports whether n sorts ahead of (id, score)
func before(n *rankNode, id string, score int) bool {
	return n.score > score || (n.score == score && n.id < id)
}

func (r *Ranking) randomLevel() int {
	level := 1
	for level < maxRankLevel && r.rng.Float64() < rankLevelChance {
		level++
	}
	return level
}

// Set inserts id or moves it to its new score
func (r *Ranking) Set(id string, score int) {
	if old, ok := r.scores[id]; ok {
		if old == score {
			return
		}
		r.remove(id, old)
	}
	r.scores[id] = score

	var update [maxRankLevel]*rankNode
	var rank [maxRankLevel]int

	x := r.head
	for i := r.level - 1; i >= 0; i-- {
		if i < r.level-1 {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && before(x.next[i], id, score) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	level := r.randomLevel()
	if level > r.level {
		for i := r.level; i < level; i++ {
			rank[i] = 0
			update[i] = r.head
			update[i].span[i] = r.length
		}
		r.level = level
	}

	node := &rankNode{
		id:    id,
		score: score,
		next:  make([]*rankNode, level),
		span:  make([]int, level),
	}
	for i := 0; i < level; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = rank[0] - rank[i] + 1
	}
	for i := level; i < r.level; i++ {
		update[i].span[i]++
	}
	r.length++
}

// Remove drops id; it reports whether id was ranked
func (r *Ranking) Remove(id string) bool {
	score, ok := r.scores[id]
	if !ok {
		return false
	}
	delete(r.scores, id)
	r.remove(id, score)
	return true
}

func (r *Ranking) remove(id string, score int) {
	var update [maxRankLevel]*rankNode
	x := r.head
	for i := r.level - 1; i >= 0; i-- {
		for x.next[i] != nil && before(x.next[i], id, score) {
			x = x.next[i]
		}
		update[i] = x
	}

	node := x.next[0]
	if node == nil || node.id != id {
		return
	}
	for i := 0; i < r.level; i++ {
		if update[i].next[i] == node {
			update[i].span[i] += node.span[i] - 1
			update[i].next[i] = node.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for r.level > 1 && r.head.next[r.level-1] == nil {
		r.level--
	}
	r.length--
}

// Rank returns the 1-based position of id, or 0 if it is not ranked
func (r *Ranking) Rank(id string) int {
	score, ok := r.scores[id]
	if !ok {
		return 0
	}
	rank := 0
	x := r.head
	for i := r.level - 1; i >= 0; i-- {
		for x.next[i] != nil && (before(x.next[i], id, score) || x.next[i].id == id) {
			rank += x.span[i]
			x = x.next[i]
		}
		if x != r.head && x.id == id {
			return rank
		}
	}
	return 0
}

// Range returns the ids ranked start..end, 1-based and inclusive
func (r *Ranking) Range(start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > r.length {
		end = r.length
	}
	if start > end {
		return nil
	}

	traversed := 0
	x := r.head
	for i := r.level - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] < start {
			traversed += x.span[i]
			x = x.next[i]
		}
	}

	ids := make([]string, 0, end-start+1)
	for x = x.next[0]; x != nil && traversed < end; x = x.next[0] {
		traversed++
		ids = append(ids, x.id)
	}
	return ids
}

// Len returns the number of ranked players
func (r *Ranking) Len() int {
	return r.length
}
