// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsched_test

import (
	"fmt"
	"time"

	"code.hybscloud.com/fsched"
)

// ExampleScheduler demonstrates read/write separation: queued reads run
// before queued writes regardless of submission order.
func ExampleScheduler() {
	s := fsched.New(fsched.NewManual()).Build()
	defer s.Destroy()

	s.QueueWrite(fsched.Op{Do: func() (any, error) {
		fmt.Println("write: resize box")
		return nil, nil
	}})
	f, _ := s.QueueRead(fsched.Op{Do: func() (any, error) {
		fmt.Println("read: measure box")
		return 42, nil
	}})

	s.Flush()
	size, _ := f.Result()
	fmt.Println("measured:", size)

	// Output:
	// read: measure box
	// write: resize box
	// measured: 42
}

// ExampleScheduler_priorities demonstrates priority ordering with the
// stable submission-order tie-break.
func ExampleScheduler_priorities() {
	s := fsched.New(fsched.NewManual()).Build()
	defer s.Destroy()

	say := func(msg string) func() (any, error) {
		return func() (any, error) {
			fmt.Println(msg)
			return nil, nil
		}
	}
	s.QueueWrite(fsched.Op{Priority: fsched.Low, Do: say("low")})
	s.QueueWrite(fsched.Op{Priority: fsched.High, Do: say("high")})
	s.QueueWrite(fsched.Op{Priority: fsched.Normal, Do: say("normal")})
	s.Flush()

	// Output:
	// high
	// normal
	// low
}

// ExampleScheduler_MutateAll demonstrates grouping related mutations into
// one scheduled unit.
func ExampleScheduler_MutateAll() {
	s := fsched.New(fsched.NewManual()).Build()
	defer s.Destroy()

	style := map[string]string{}
	f, _ := s.MutateAll(style, fsched.Normal,
		func() error { style["width"] = "120px"; return nil },
		func() error { style["height"] = "80px"; return nil },
	)
	s.Flush()

	_, err := f.Result()
	fmt.Println("applied:", err == nil)
	fmt.Println(style["width"], style["height"])

	// Output:
	// applied: true
	// 120px 80px
}

// ExampleScheduler_Debounce demonstrates collapsing a trigger burst into
// a single queued operation carrying the last payload.
func ExampleScheduler_Debounce() {
	s := fsched.New(fsched.NewManual()).Build()
	defer s.Destroy()

	key := fsched.CoalesceKey{Kind: "resize", Source: "panel"}
	for _, width := range []int{10, 20, 30, 40, 50} {
		w := width
		s.Debounce(key, 10*time.Millisecond, fsched.Write, fsched.Op{
			Do: func() (any, error) {
				fmt.Println("apply width:", w)
				return nil, nil
			},
		})
	}

	time.Sleep(50 * time.Millisecond) // burst over, window elapses
	s.Flush()

	// Output:
	// apply width: 50
}

// ExampleManual demonstrates a host-driven pulse: the host fires once per
// native frame and the scheduler drains one budgeted batch per fire.
func ExampleManual() {
	pulse := fsched.NewManual()
	s := fsched.New(pulse).MaxBatch(2).Build()
	defer s.Destroy()

	for i := 1; i <= 4; i++ {
		n := i
		s.QueueWrite(fsched.Op{Do: func() (any, error) {
			fmt.Println("op", n)
			return nil, nil
		}})
	}

	pulse.Fire() // frame 1: two operations
	fmt.Println("queued:", s.Len())
	pulse.Fire() // frame 2: the rest
	fmt.Println("queued:", s.Len())

	// Output:
	// op 1
	// op 2
	// queued: 2
	// op 3
	// op 4
	// queued: 0
}
