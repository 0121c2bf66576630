package leaderboard

import "testing"

func TestSparkPoints(t *testing.T) {
	tests := []struct {
		tokens, queries, streak int
		want                    int
	}{
		{0, 0, 0, 0},
		{99, 0, 0, 0},
		{250, 2, 0, 12},
		{250, 2, 3, 15}, // 12 * 1.3 = 15.6
		{1000, 10, 10, 120},
		{1000, 10, 25, 120}, // capped at 2x
	}
	for _, tt := range tests {
		if got := SparkPoints(tt.tokens, tt.queries, tt.streak); got != tt.want {
			t.Fatalf("SparkPoints(%d,%d,%d)=%d want %d", tt.tokens, tt.queries, tt.streak, got, tt.want)
		}
	}
}

func TestSparkPointsMonotone(t *testing.T) {
	for streak := 0; streak <= 12; streak++ {
		prev := -1
		for tokens := 0; tokens <= 2000; tokens += 37 {
			got := SparkPoints(tokens, 4, streak)
			if got < prev {
				t.Fatalf("not monotone in tokens at tokens=%d streak=%d", tokens, streak)
			}
			prev = got
		}
		prev = -1
		for queries := 0; queries <= 50; queries++ {
			got := SparkPoints(500, queries, streak)
			if got < prev {
				t.Fatalf("not monotone in queries at queries=%d streak=%d", queries, streak)
			}
			prev = got
		}
	}
	prev := -1
	for streak := 0; streak <= 15; streak++ {
		got := SparkPoints(700, 9, streak)
		if got < prev {
			t.Fatalf("not monotone in streak at %d", streak)
		}
		prev = got
	}
	if SparkPoints(700, 9, 10) != SparkPoints(700, 9, 30) {
		t.Fatalf("expected cap to hold beyond streak 10")
	}
}

type row struct {
	name   string
	points int
	rank   int
}

func (r *row) Points() int      { return r.points }
func (r *row) SetRank(rank int) { r.rank = rank }

func TestRankIsStableAndStrictlyIncreasing(t *testing.T) {
	rows := []*row{
		{name: "a", points: 10},
		{name: "b", points: 30},
		{name: "c", points: 10},
		{name: "d", points: 50},
		{name: "e", points: 30},
	}
	Rank(rows)

	wantOrder := []string{"d", "b", "e", "a", "c"}
	for i, r := range rows {
		if r.name != wantOrder[i] {
			t.Fatalf("position %d = %s want %s", i, r.name, wantOrder[i])
		}
		if r.rank != i+1 {
			t.Fatalf("rank at %d = %d", i, r.rank)
		}
	}
}
