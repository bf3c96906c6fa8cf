package parser

// sampleDump is a trimmed audio_flinger dump with one active mixer thread,
// one standby direct thread and a client section that includes a system uid.
const sampleDump = `Libraries loaded:
 Library effect_bundle containing effects:
  Effect "Bass Boost" (Bass Boost)

Notification Clients:
   pid    uid  name
  1190   1041  audioserver
 30548  10553  com.salt.music
  2345   1000  android.uid.system
 12001  10210  com.example.podcast
Global session refs:
  session  cnt     pid    uid  name
      89    1   30548  10553  com.salt.music

Output thread 0x7a2c0c1740, name AudioOut_D, tid 1512, type 0 (MIXER):
  I/O handle: 13
  Standby: no
  Sample rate: 48000 Hz
  3 Tracks of which 2 are active
Type     Id Active Client Session Port Id S  Flags   Format Chn mask  SRate ST Usg CT
7      yes   30548    89     41 A  0x000 00000001 00000003  48000  3   1  2
12     yes   12001    97     45 A  0x000 00000001 00000003  44100  3   1  2
15     no    1190     101    46 I  0x000 00000001 00000003  48000  3   1  2
  Effect Chains (1):
    Session 89

Output thread 0x7a2c0d2200, name AudioOut_15, tid 1600, type 1 (DIRECT):
  I/O handle: 21
  Standby: yes
  1 Tracks of which 1 are active
Type     Id Active Client Session Port Id S  Flags   Format Chn mask  SRate
21     yes   4444     120    50 A  0x000 00000001 00000003  96000
`
