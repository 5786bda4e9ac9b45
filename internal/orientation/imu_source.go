package orientation

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

type imuSource struct {
	name string
	imu  *mpu9250.MPU9250
}

// NewIMUSource initializes an MPU9250 over SPI and returns a Source that
// reads roll/pitch from the accelerometer.
func NewIMUSource(spiDev, csPin string) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU new device: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU init: %w", err)
	}

	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed on %s: %v", spiDev, err)
	} else {
		log.Printf("IMU calibration complete on %s", spiDev)
	}

	return &imuSource{name: spiDev, imu: imu}, nil
}

// Next reads the accelerometer and converts it to a tilt-only pose.
func (s *imuSource) Next() (Pose, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Pose{}, fmt.Errorf("%s acc X: %w", s.name, err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Pose{}, fmt.Errorf("%s acc Y: %w", s.name, err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Pose{}, fmt.Errorf("%s acc Z: %w", s.name, err)
	}

	// ratios are enough for tilt, no unit conversion needed
	return ComputePoseFromAccel(float64(ax), float64(ay), float64(az)), nil
}
