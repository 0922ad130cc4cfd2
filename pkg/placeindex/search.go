package placeindex

import "sort"

// Result is a single autocomplete hit.
type Result struct {
	Key      string
	Record   Record
	Distance int
}

type nodeWordKey struct {
	node    int
	wordPos int
}

type stackFrame struct {
	node    int
	wordPos int
	budget  int
	prefix  string
}

// Search implements spec §4.4's bounded-edit-distance query: a depth-first
// traversal over the trie enumerated in ascending-distance rounds
// (distance 0, then 1, ... up to maxEdits), with a (node, word_position)
// memo of the best remaining budget seen carried between rounds to prune
// dominated revisits. When continuations is true, once the query string is
// fully consumed at zero remaining budget the search also descends into
// every remaining subtree to emit leaf descendants.
func (idx *Index) Search(query string, maxEdits, k int, continuations bool) []Result {
	word := []rune(lower(query))
	visited := make(map[nodeWordKey]int)
	var results []Result

	for d := 0; d <= maxEdits; d++ {
		if k > 0 && len(results) >= k {
			break
		}
		idx.searchRound(word, d, continuations, visited, &results)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Key < results[j].Key
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func (idx *Index) searchRound(word []rune, budget int, continuations bool, visited map[nodeWordKey]int, results *[]Result) {
	stack := []stackFrame{{node: 0, wordPos: 0, budget: budget, prefix: ""}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := nodeWordKey{node: top.node, wordPos: top.wordPos}
		if best, ok := visited[key]; ok && top.budget <= best {
			continue
		}
		visited[key] = top.budget

		if top.budget == 0 && top.wordPos == len(word) && idx.leaf[top.node] {
			for _, it := range idx.itemSlice(top.node) {
				*results = append(*results, Result{Key: top.prefix, Record: idx.records[it], Distance: budget})
			}
		}

		switch {
		case top.wordPos < len(word):
			c := word[top.wordPos]
			if top.budget == 0 {
				if child := idx.getChild(top.node, c); child >= 0 {
					stack = append(stack, stackFrame{child, top.wordPos + 1, 0, top.prefix + string(c)})
				}
				continue
			}

			for _, child := range idx.childSlice(top.node) {
				ch := idx.chars[child]
				if ch == c {
					continue
				}
				// substitution
				stack = append(stack, stackFrame{int(child), top.wordPos + 1, top.budget - 1, top.prefix + string(ch)})
				// insertion (take a child's character without consuming the query's current rune)
				stack = append(stack, stackFrame{int(child), top.wordPos, top.budget - 1, top.prefix + string(ch)})
			}
			// deletion (consume the query's rune, stay at the same node)
			stack = append(stack, stackFrame{top.node, top.wordPos + 1, top.budget - 1, top.prefix})
			// match
			if child := idx.getChild(top.node, c); child >= 0 {
				stack = append(stack, stackFrame{child, top.wordPos + 1, top.budget, top.prefix + string(c)})
			}

		default:
			if top.budget == 0 && !continuations {
				continue
			}
			nextBudget := top.budget
			if nextBudget > 0 {
				nextBudget--
			}
			for _, child := range idx.childSlice(top.node) {
				ch := idx.chars[child]
				stack = append(stack, stackFrame{int(child), top.wordPos, nextBudget, top.prefix + string(ch)})
			}
		}
	}
}
