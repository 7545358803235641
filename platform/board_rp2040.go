//go:build rp2040

package platform

import (
	"context"
	"device/arm"
	"machine"
	"runtime"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"sensornode-go/drivers/htu21d"
	"sensornode-go/errcode"
	"sensornode-go/services/measure"
	"sensornode-go/services/network"
	"sensornode-go/services/node"
	"sensornode-go/services/observer"
	"sensornode-go/services/session"
	"sensornode-go/types"
)

// Device is the embedded configuration profile for this build.
const Device = "sensor2-pico"

func Board() node.Builder { return build }

// Console writes observer lines to UART0.
func Console() observer.Observer {
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return &observer.Console{W: uartx.UART0}
}

func build(cfg types.NodeConfig, d node.Deps) (node.Hardware, error) {
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return node.Hardware{}, err
	}
	// Boards carry either an HTU21D or an SHTC3; the HTU21D answers a
	// soft reset, the SHTC3 a wake-up.
	var sensor measure.Sensor
	htu := htu21d.New(i2c)
	if err := htu.Configure(); err == nil {
		sensor = &htu
	} else if sht := measure.NewSHTC3(i2c); sht.Detect() == nil {
		sensor = sht
	} else {
		return node.Hardware{}, errcode.New(errcode.HardwareFailed, "board.sensor", "no htu21d or shtc3 on i2c0")
	}

	// TODO: bind the radio's mesh and pub/sub stacks here once a TinyGo
	// driver for them exists; the in-process gateway stands in meanwhile.
	mesh := network.NewSimMesh(time.Second)
	sess := session.NewSim(d.Queue, d.Context)

	return node.Hardware{
		Counter: newTimerCounter(),
		Sensor:  sensor,
		ADC:     &rp2ADC{adc: machine.ADC{Pin: machine.ADC0}, flag: d.Context},
		Mesh:    mesh,
		Session: sess,
		Idler:   wfiIdler{},
	}, nil
}

// rp2ADC samples synchronously, then raises the completion flag itself.
type rp2ADC struct {
	adc  machine.ADC
	flag SampleNotifier
	v    uint16
}

func (a *rp2ADC) Open() error {
	machine.InitADC()
	a.adc.Configure(machine.ADCConfig{})
	return nil
}

func (a *rp2ADC) Close() error { return nil }

func (a *rp2ADC) StartSample() error {
	a.v = a.adc.Get()
	a.flag.NotifySampleReady()
	return nil
}

func (a *rp2ADC) Value() uint16 { return a.v }

type wfiIdler struct{}

func (wfiIdler) Idle(context.Context) {
	arm.Asm("wfi")
	runtime.Gosched()
}
