package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"marketmaker/internal/codec"
	"marketmaker/internal/recorder"

	"github.com/bytedance/sonic"
)

func main() {
	dir := flag.String("dir", "testdata/tape", "Tape directory")
	prefix := flag.String("prefix", "", "Tape file prefix (default: tape)")
	speed := flag.Float64("speed", 0, "Playback speed (1=recorded pace, 0=no pacing)")
	decode := flag.Bool("decode", false, "Print every order of each tick")
	flag.Parse()

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:        *dir,
		FilePrefix: *prefix,
		Speed:      *speed,
	})
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	var index, orders int
	err = pb.Run(context.Background(), func(en recorder.Entry) error {
		index++
		out := en.Output()
		for _, p := range codec.Products(out) {
			orders += len(out.Orders[p])
		}

		line := fmt.Sprintf("#%d ts=%d books=%d products=%d conversions=%d trader_data=%dB",
			index, en.State.Timestamp, len(en.State.OrderDepths), len(out.Orders), out.Conversions, len(out.TraderData))
		if *decode {
			body, err := sonic.ConfigStd.MarshalToString(en.Result.Orders)
			if err != nil {
				return err
			}
			line += " orders=" + body
		}
		fmt.Println(line)
		return nil
	})
	if err != nil {
		log.Fatalf("playback failed: %v", err)
	}
	log.Printf("tape completed: ticks=%d orders=%d", index, orders)
}
