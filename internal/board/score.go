package board

// ScoreColumns scores each column: a face v present k times adds v*v*k.
func (that *Grid) ScoreColumns() []int {
	scores := make([]int, that.width)

	for column := 0; column < that.width; column++ {
		var occurrences [MaxFace + 1]int
		for row := 0; row < that.height; row++ {
			occurrences[that.At(column, row)]++
		}

		for face := MinFace; face <= MaxFace; face++ {
			scores[column] += face * face * occurrences[face]
		}
	}

	return scores
}

// Total is the sum of all column scores.
func (that *Grid) Total() int {
	total := 0
	for _, score := range that.ScoreColumns() {
		total += score
	}

	return total
}
