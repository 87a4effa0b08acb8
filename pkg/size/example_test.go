package size_test

import (
	"fmt"

	"github.com/matzehuels/ember/pkg/arena"
	"github.com/matzehuels/ember/pkg/size"
)

func ExampleDistribute() {
	sizes := []size.Size{size.Absolute(40), size.Fill(1), size.Fill(1)}
	fmt.Println(size.Distribute(sizes, 101, 0, nil))
	// Output: [40 30 31]
}

func ExampleComplement() {
	fill := size.Pivot(size.Fill(0.75), arena.Nil)
	track := size.Complement(fill)
	fmt.Println(size.Resolve(fill, 160, size.Inputs{}), size.Resolve(track, 160, size.Inputs{}))
	// Output: 120 40
}

func ExampleParse() {
	for _, s := range []string{"fit", "fill*0.5", "120", "~pivot:fill*0.2"} {
		v, err := size.Parse(s)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(v)
	}
	// Output:
	// fit
	// fill:0.5
	// 120px
	// ~pivot:fill:0.2
}
