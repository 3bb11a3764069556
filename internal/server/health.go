package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// healthResponse reports process liveness plus enough system stats for
// an operator dashboard. Grounded on the teacher's
// internal/server/system_handlers.go getSystemStats pattern: a short
// (100ms) CPU sample to avoid blocking the handler, graceful
// degradation to zero on either call's failure.
type healthResponse struct {
	Status     string  `json:"status"`
	Service    string  `json:"service"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := s.systemStats()
	s.writeData(w, r, http.StatusOK, healthResponse{
		Status:     "healthy",
		Service:    "tonsurance-core",
		CPUPercent: cpuPercent,
		RAMPercent: ramPercent,
	})
}

func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read cpu percent")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read memory stats")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
