package ebpf

import (
	"cand/internal/global"
	"fmt"
	"runtime"

	"github.com/cilium/ebpf"
	"golang.org/x/sys/unix"
)

// Loads the filter for rules and attaches it to the socket. The program is released
// once attached (the socket holds the kernel reference).
func AttachFilter(fd int, rules []global.CANFilter) (err error) {
	if runtime.GOOS != "linux" {
		err = fmt.Errorf("eBPF socket filters require linux")
		return
	}

	insns, err := BuildFilter(rules)
	if err != nil {
		return
	}

	// Older kernels account program memory against the memlock limit
	err = unix.Setrlimit(unix.RLIMIT_MEMLOCK, &unix.Rlimit{
		Cur: unix.RLIM_INFINITY,
		Max: unix.RLIM_INFINITY,
	})
	if err != nil {
		err = fmt.Errorf("set resource limit: %v", err)
		return
	}

	prog, err := ebpf.NewProgram(&ebpf.ProgramSpec{
		Name:         global.FilterProgName,
		Type:         ebpf.SocketFilter,
		License:      "GPL",
		Instructions: insns,
	})
	if err != nil {
		err = fmt.Errorf("load filter program: %v", err)
		return
	}
	defer prog.Close()

	err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ATTACH_BPF, prog.FD())
	if err != nil {
		err = fmt.Errorf("attach filter program: %v", err)
		return
	}
	return
}
