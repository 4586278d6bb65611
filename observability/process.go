package observability

import (
	"os"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats are the resource figures of the relay process.
type ProcessStats struct {
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Status     string  `json:"status"`
}

// ProcessProbe reads the stats of one process.
type ProcessProbe struct {
	process *process.Process
}

// NewSelfProbe returns a probe on the current process.
func NewSelfProbe() (*ProcessProbe, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ProcessProbe{process: p}, nil
}

// Stats retrieves memory, CPU and OS status of the process.
func (p *ProcessProbe) Stats() (ProcessStats, error) {
	memInfo, err := p.process.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}

	cpuPercent, err := p.process.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}

	status, err := p.process.Status()
	if err != nil {
		return ProcessStats{}, err
	}
	return ProcessStats{RSSBytes: memInfo.RSS, CPUPercent: cpuPercent, Status: status}, nil
}
