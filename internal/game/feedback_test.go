package game

import (
	"math"
	"testing"
)

func TestChooseFeedback(t *testing.T) {
	cases := []struct {
		name         string
		blur1, blur2 float64
		roll         float64
		want         string
	}{
		{
			name:  "clear answer",
			blur1: 0.001, blur2: 0.01, roll: 0.5,
			want: "The first lens (+1.00D) looks less blurry than the second (-2.00D).",
		},
		{
			name:  "second better",
			blur1: 0.01, blur2: 0.001, roll: 0.5,
			want: "The second lens (-2.00D) looks less blurry than the first (+1.00D).",
		},
		{
			name:  "wrong answer",
			blur1: 0.001, blur2: 0.01, roll: 0.005,
			want: "The second lens (-2.00D) seems a bit less blurry. (Patient seems a little unsure)",
		},
		{
			name:  "hesitant",
			blur1: 0.001, blur2: 0.01, roll: 0.02,
			want: "Hmm, both lenses (+1.00D and -2.00D) look quite similar to me.",
		},
		{
			name:  "close lenses are noisier",
			blur1: 0.001, blur2: 0.001001, roll: 0.2,
			want: "Hmm, both lenses (+1.00D and -2.00D) look quite similar to me.",
		},
		{
			name:  "identical",
			blur1: 0.002, blur2: 0.002, roll: 0.9,
			want: "Both lenses (+1.00D and -2.00D) look identical.",
		},
		{
			name:  "both infinite",
			blur1: math.Inf(1), blur2: math.Inf(1), roll: 0.9,
			want: "Both lenses (+1.00D and -2.00D) look identical.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ChooseFeedback(1, -2, tc.blur1, tc.blur2, tc.roll)
			if got != tc.want {
				t.Errorf("got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestAnswerOdds(t *testing.T) {
	if o, s := answerOdds(1); o != 0.01 || s != 0.03 {
		t.Errorf("far apart: %v %v", o, s)
	}
	if o, s := answerOdds(5e-5); o != 0.05 || s != 0.15 {
		t.Errorf("close: %v %v", o, s)
	}
	if o, s := answerOdds(1e-5); o != 0.10 || s != 0.25 {
		t.Errorf("very close: %v %v", o, s)
	}
}
