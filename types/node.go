package types

import "time"

// LinkMode is the mesh link configuration of the node.
type LinkMode struct {
	RxOnWhenIdle       bool `yaml:"rx_on_when_idle"`
	SecureDataRequests bool `yaml:"secure_data_requests"`
	FullThreadDevice   bool `yaml:"full_thread_device"`
	FullNetworkData    bool `yaml:"full_network_data"`
}

// NetworkConfig holds the static mesh join parameters.
type NetworkConfig struct {
	Name          string   `yaml:"name"`
	PANID         uint16   `yaml:"pan_id"`
	ExtendedPANID [8]byte  `yaml:"-"`
	Channel       uint8    `yaml:"channel"`
	NetworkKey    [16]byte `yaml:"-"`
	Mode          LinkMode `yaml:"mode"`
	SLAAC         bool     `yaml:"slaac"`
}

// ConnectConfig is carried by every connect request.
type ConnectConfig struct {
	Address               string        `yaml:"address"`
	Port                  uint16        `yaml:"port"`
	ClientPort            uint16        `yaml:"client_port"`
	ClientID              string        `yaml:"client_id"`
	KeepAlive             time.Duration `yaml:"keep_alive"`
	CleanSession          bool          `yaml:"clean_session"`
	RetransmissionCount   uint8         `yaml:"retransmission_count"`
	RetransmissionTimeout time.Duration `yaml:"retransmission_timeout"`
}

// Topics are the two fixed channels.
type Topics struct {
	Measurement TopicID `yaml:"measurement"`
	Telemetry   TopicID `yaml:"telemetry"`
}

// Timing holds the duty-cycle parameters.
type Timing struct {
	SleepPeriod  time.Duration `yaml:"sleep_period"`
	SleepGuard   time.Duration `yaml:"sleep_guard"`
	AwakeTimeout time.Duration `yaml:"awake_timeout"`
	ShortPoll    time.Duration `yaml:"short_poll"`
	// LongPoll defaults to SleepPeriod when zero.
	LongPoll time.Duration `yaml:"long_poll"`
}

// RTCConfig describes the wake alarm counter.
type RTCConfig struct {
	InputHz   uint32 `yaml:"input_hz"`
	Prescaler uint32 `yaml:"prescaler"`
	WidthBits uint   `yaml:"width_bits"`
}

// DividerConfig describes the battery voltage divider in front of the ADC.
type DividerConfig struct {
	R1        float64 `yaml:"r1"`
	R2        float64 `yaml:"r2"`
	Gain      float64 `yaml:"gain"`
	Precision uint    `yaml:"precision"`
	VrefMV    int32   `yaml:"vref_mv"`
}

// ADCConfig bounds the battery sample wait.
type ADCConfig struct {
	SampleTimeout time.Duration `yaml:"sample_timeout"`
	Divider       DividerConfig `yaml:"divider"`
}

// NodeConfig is the immutable configuration handed to node assembly.
type NodeConfig struct {
	Device  string        `yaml:"device"`
	Network NetworkConfig `yaml:"network"`
	Connect ConnectConfig `yaml:"connect"`
	Topics  Topics        `yaml:"topics"`
	Timing  Timing        `yaml:"timing"`
	RTC     RTCConfig     `yaml:"rtc"`
	ADC     ADCConfig     `yaml:"adc"`
}
