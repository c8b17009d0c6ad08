package pid1

import "golang.org/x/sys/unix"

// setupNetworking brings up the loopback interface when a network namespace
// was created (spec §4.8) - some applications expect `lo` to exist and be up
// even though this core does no other network configuration.
func setupNetworking(opt *Options) {
	if !opt.CreateNetNS {
		return
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		dieErr(err, "socket")
	}
	defer func() {
		if err := unix.Close(fd); err != nil {
			dieErr(err, "close")
		}
	}()

	ifr, err := unix.NewIfreq("lo")
	if err != nil {
		dieErr(err, "building ifreq for lo")
	}

	if _, err := unix.IfNametoindex("lo"); err != nil {
		dieErr(err, "if_nametoindex")
	}

	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		dieErr(err, "ioctl(SIOCGIFFLAGS)")
	}
	ifr.SetUint16(ifr.Uint16() | unix.IFF_UP)
	if err := unix.IoctlIfreq(fd, unix.SIOCSIFFLAGS, ifr); err != nil {
		dieErr(err, "ioctl(SIOCSIFFLAGS)")
	}
}
