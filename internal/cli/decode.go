package cli

import (
	"bufio"
	"cand/internal/global"
	"cand/pkg/record"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.einride.tech/can"
	"golang.org/x/term"
)

// Per kind record counts of one log
type decodeSummary struct {
	Data          int
	Starts        int
	Drops         int
	DroppedFrames uint64
}

// Prints every record of a capture log to stdout
func DecodeMode(commandname string, args []string) (err error) {
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	if commandFlags.NArg() != 1 {
		err = fmt.Errorf("expected exactly one log file, got %d", commandFlags.NArg())
		return
	}

	output := bufio.NewWriter(os.Stdout)
	defer output.Flush()

	// Annotations only for people, pipes get bare records
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	_, err = dumpLog(commandFlags.Arg(0), output, interactive)
	return
}

func dumpLog(path string, output io.Writer, annotate bool) (summary decodeSummary, err error) {
	reader, err := record.OpenLog(path)
	if err != nil {
		return
	}
	defer reader.Close()

	if annotate {
		fmt.Fprintf(output, "# %s\n", path)
	}

	for {
		var rec record.Record
		rec, err = reader.Next()
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			// Keep what was printed, a crash can leave a partial tail record
			err = fmt.Errorf("stopped after %d complete records: %w", reader.Offset/int64(record.Size), err)
			break
		}

		switch rec.Kind {
		case record.KindData:
			summary.Data++
		case record.KindStartTime:
			summary.Starts++
		case record.KindDrop:
			summary.Drops++
			summary.DroppedFrames += uint64(rec.DropCount())
		}
		fmt.Fprintln(output, formatRecord(rec))
	}

	if annotate {
		fmt.Fprintf(output, "# %d frames, %d session starts, %d loss markers (%d frames lost)\n",
			summary.Data, summary.Starts, summary.Drops, summary.DroppedFrames)
	}
	return
}

// One candump style line: (seconds.millis) then the record body
func formatRecord(rec record.Record) (line string) {
	stamp := fmt.Sprintf("(%d.%03d)", rec.Timestamp/1000, rec.Timestamp%1000)

	switch rec.Kind {
	case record.KindStartTime:
		line = fmt.Sprintf("%s START %s", stamp, rec.StartTime().UTC().Format(time.RFC3339Nano))
	case record.KindDrop:
		line = fmt.Sprintf("%s DROP %d", stamp, rec.DropCount())
	default:
		line = stamp + " " + formatFrame(rec.ID, rec.Payload)
	}
	return
}

// Records do not keep the length code, so data frames print all 8 payload bytes
func formatFrame(canID uint32, payload [8]byte) (text string) {
	if canID&record.FlagERR != 0 {
		text = fmt.Sprintf("%08X#%X ERR", canID&record.MaskExtID, payload[:])
		return
	}

	frame := can.Frame{
		IsExtended: canID&record.FlagEFF != 0,
		IsRemote:   canID&record.FlagRTR != 0,
	}
	if frame.IsExtended {
		frame.ID = canID & record.MaskExtID
	} else {
		frame.ID = canID & record.MaskStdID
	}
	if !frame.IsRemote {
		frame.Length = uint8(len(payload))
		frame.Data = can.Data(payload)
	}

	text = frame.String()
	return
}
