// Command cubeinfo inspects array containers through storage units.
//
//	cubeinfo describe a.nc b.nc
//	cubeinfo coord sst.nc time --begin 6 --end 12
//	cubeinfo read sst.nc sst --slice 1:3,0:2
//	cubeinfo schema sst.nc > sst.yaml
package main

import (
	"os"

	"github.com/robert-malhotra/go-cubeaccess/internal/logging"
	"github.com/robert-malhotra/go-cubeaccess/netcdf"
)

func main() {
	if err := newRootCmd(netcdf.New()).Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
