package configs

// 网络处理相关常量

const (
	// 组播应答读取时字节缓冲区大小
	MulticastReadBufferSize = 65536 // 64 KiB
	// 组播报文的 TTL，DIAL 设备都在本地网络内
	MulticastTTL = 2
	// HTTP 响应体最大读取字节数
	HTTPResponseBodyMaxSize = 1 * 1024 * 1024 // 1 MiB
	// 网络唤醒魔术包默认发往的广播地址
	WakeOnLanBroadcastAddr = "255.255.255.255:9"
	// 服务端未声明 WAKEUP TIMEOUT 时等待设备上线的默认时长
	WakeOnLanDefaultTimeout = 15 // 秒
	// 等待设备上线时探测设备描述的间隔
	WakeOnLanPollInterval = 1000 // 毫秒
)
